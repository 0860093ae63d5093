package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eyewear-store/internal/models"
)

func TestNormalizeImages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"array wins", `{"images":["a.jpg"," ","b.jpg"],"image1":"x.jpg"}`, []string{"a.jpg", "b.jpg"}},
		{"nested object", `{"images":[],"Images":{"image1":"n1.jpg","image2":""}}`, []string{"n1.jpg"}},
		{"flat fields", `{"image1":"f1.jpg","image2":"f2.jpg"}`, []string{"f1.jpg", "f2.jpg"}},
		{"nothing", `{}`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in ImageInput
			require.NoError(t, json.Unmarshal([]byte(tt.body), &in))
			assert.Equal(t, tt.want, NormalizeImages(in))
		})
	}
}

func TestValidateItem(t *testing.T) {
	assert.NoError(t, ValidateItem(models.CatalogItem{Title: "Round", Price: 1200}))

	var verr *ValidationError
	assert.ErrorAs(t, ValidateItem(models.CatalogItem{Title: " "}), &verr)
	assert.ErrorAs(t, ValidateItem(models.CatalogItem{Title: "x", Price: -1}), &verr)
	assert.ErrorAs(t, ValidateItem(models.CatalogItem{Title: "x", Ratings: 6}), &verr)
	assert.ErrorAs(t, ValidateItem(models.CatalogItem{Title: "x", Discount: 101}), &verr)
}

func TestImageInputProvided(t *testing.T) {
	assert.False(t, ImageInput{}.Provided())
	assert.True(t, ImageInput{Images: []string{}}.Provided())
	assert.True(t, ImageInput{Legacy: &LegacyImages{}}.Provided())
	assert.True(t, ImageInput{Image1: "a.jpg"}.Provided())
}

func TestItemPatchSetDoc(t *testing.T) {
	title := " New "
	price := 10.0
	patch := ItemPatch{Title: &title, Price: &price}
	require.NoError(t, patch.Validate())

	set := patch.setDoc(fixedNow)
	assert.Equal(t, "New", set["title"])
	assert.Equal(t, 10.0, set["price"])
	assert.Equal(t, fixedNow, set["updatedAt"])
	assert.NotContains(t, set, "images")

	assert.Empty(t, ItemPatch{}.setDoc(fixedNow))

	cleared := ItemPatch{Images: []string{}}.setDoc(fixedNow)
	assert.Equal(t, []string{}, cleared["images"])

	empty := ""
	assert.Error(t, ItemPatch{Title: &empty}.Validate())
}
