package catalog

import (
	"sort"
	"strings"
)

type CategoryPath struct {
	Category       string `bson:"category"`
	SubCategory    string `bson:"subCategory"`
	SubSubCategory string `bson:"subSubCategory"`
}

type CategoryNode struct {
	Name     string         `json:"name"`
	Children []CategoryNode `json:"children,omitempty"`
}

// BuildCategoryTree folds flat paths into a sorted three level tree. Blank
// levels end the path.
func BuildCategoryTree(paths []CategoryPath) []CategoryNode {
	type level map[string]level
	root := level{}
	for _, p := range paths {
		node := root
		for _, name := range []string{p.Category, p.SubCategory, p.SubSubCategory} {
			name = strings.TrimSpace(name)
			if name == "" {
				break
			}
			next, ok := node[name]
			if !ok {
				next = level{}
				node[name] = next
			}
			node = next
		}
	}

	var build func(level) []CategoryNode
	build = func(l level) []CategoryNode {
		if len(l) == 0 {
			return nil
		}
		names := make([]string, 0, len(l))
		for name := range l {
			names = append(names, name)
		}
		sort.Strings(names)
		nodes := make([]CategoryNode, 0, len(names))
		for _, name := range names {
			nodes = append(nodes, CategoryNode{Name: name, Children: build(l[name])})
		}
		return nodes
	}

	if tree := build(root); tree != nil {
		return tree
	}
	return []CategoryNode{}
}
