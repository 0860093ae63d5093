package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"eyewear-store/internal/models"
)

func TestCartHelpers(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	cart := addToCart(nil, a, 1)
	cart = addToCart(cart, a, 2)
	cart = addToCart(cart, b, 1)
	assert.Equal(t, []models.CartItem{{ProductID: a, Quantity: 3}, {ProductID: b, Quantity: 1}}, cart)

	assert.True(t, setCartQuantity(cart, b, 4))
	assert.Equal(t, 4, cart[1].Quantity)
	assert.False(t, setCartQuantity(cart, primitive.NewObjectID(), 1))

	cart, found := removeFromCart(cart, a)
	assert.True(t, found)
	assert.Equal(t, []models.CartItem{{ProductID: b, Quantity: 4}}, cart)

	_, found = removeFromCart(cart, a)
	assert.False(t, found)
}

func TestMarkDefault(t *testing.T) {
	addresses := []models.Address{{ID: "home", IsDefault: true}, {ID: "work"}}

	assert.True(t, markDefault(addresses, "work"))
	assert.False(t, addresses[0].IsDefault)
	assert.True(t, addresses[1].IsDefault)

	assert.False(t, markDefault(addresses, "missing"))
	assert.True(t, addresses[1].IsDefault)
}

func TestGetCartToleratesDeletedProducts(t *testing.T) {
	mt := newMockDB(t)

	mt.Run("dangling line has no product", func(mt *mtest.T) {
		t := mt.T
		userID, kept, gone := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: userID},
				{Key: "cart", Value: bson.A{
					bson.D{{Key: "productId", Value: kept}, {Key: "quantity", Value: 2}},
					bson.D{{Key: "productId", Value: gone}, {Key: "quantity", Value: 1}},
				}},
			}),
			emptyCursor("test.products"),
			mtest.CreateCursorResponse(0, "test.contactlenses", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: kept}, {Key: "title", Value: "Aqua"}, {Key: "price", Value: 100.0},
			}),
		)

		r := userRouter(http.MethodGet, "/cart", GetCart(mt.DB))
		w := doJSON(r, http.MethodGet, "/cart", nil, bearer(t, userID))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body struct {
			Items []cartLine `json:"items"`
			Total float64    `json:"total"`
		}
		decodeBody(t, w, &body)
		require.Len(t, body.Items, 2)
		require.NotNil(t, body.Items[0].Product)
		assert.Equal(t, "contactLens", body.Items[0].Product.Type)
		assert.Nil(t, body.Items[1].Product)
		assert.Equal(t, 200.0, body.Total)
	})
}

func TestAddToCartRequiresExistingProduct(t *testing.T) {
	mt := newMockDB(t)

	mt.Run("unknown product", func(mt *mtest.T) {
		t := mt.T
		mt.AddMockResponses(emptyCursor("test.products"), emptyCursor("test.contactlenses"))

		r := userRouter(http.MethodPost, "/cart", AddToCart(mt.DB))
		w := doJSON(r, http.MethodPost, "/cart", map[string]interface{}{
			"productId": primitive.NewObjectID().Hex(),
			"quantity":  1,
		}, bearer(t, primitive.NewObjectID()))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	mt.Run("zero quantity", func(mt *mtest.T) {
		t := mt.T
		r := userRouter(http.MethodPut, "/cart/:productId", UpdateCartItem(mt.DB))
		w := doJSON(r, http.MethodPut, "/cart/"+primitive.NewObjectID().Hex(), map[string]interface{}{"quantity": 0}, bearer(t, primitive.NewObjectID()))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCreateUserAddress(t *testing.T) {
	mt := newMockDB(t)

	mt.Run("first address becomes default", func(mt *mtest.T) {
		t := mt.T
		userID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, bson.D{{Key: "_id", Value: userID}}),
			mtest.CreateSuccessResponse(),
		)

		r := userRouter(http.MethodPost, "/users/addresses", CreateUserAddress(mt.DB))
		w := doJSON(r, http.MethodPost, "/users/addresses", map[string]interface{}{
			"street":     "12 MG Road",
			"city":       "Bengaluru",
			"postalCode": "560001",
		}, bearer(t, userID))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var body struct {
			Addresses []models.Address `json:"addresses"`
		}
		decodeBody(t, w, &body)
		require.Len(t, body.Addresses, 1)
		assert.True(t, body.Addresses[0].IsDefault)
		assert.Len(t, body.Addresses[0].ID, 36)
	})
}
