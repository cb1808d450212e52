package domain

import "fmt"

// Kind identifies a record collection. Values double as URL path segments and
// snapshot bucket names.
type Kind string

const (
	KindRecipe              Kind = "recipes"
	KindVideoEvent          Kind = "videoEvents"
	KindInventoryItem       Kind = "inventoryItems"
	KindTransaction         Kind = "transactions"
	KindVideoTemplate       Kind = "videoTemplates"
	KindEducationalResource Kind = "educationalResources"
)

var kinds = []Kind{
	KindRecipe,
	KindVideoEvent,
	KindInventoryItem,
	KindTransaction,
	KindVideoTemplate,
	KindEducationalResource,
}

// Kinds returns every record kind in a fixed order.
func Kinds() []Kind {
	return append([]Kind(nil), kinds...)
}

// ParseKind validates a collection name.
func ParseKind(s string) (Kind, error) {
	for _, k := range kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// NewRecord returns an empty record of the given kind.
func NewRecord(kind Kind) (Record, error) {
	switch kind {
	case KindRecipe:
		return &Recipe{}, nil
	case KindVideoEvent:
		return &VideoEvent{}, nil
	case KindInventoryItem:
		return &InventoryItem{}, nil
	case KindTransaction:
		return &Transaction{}, nil
	case KindVideoTemplate:
		return &VideoTemplate{}, nil
	case KindEducationalResource:
		return &EducationalResource{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
	}
}
