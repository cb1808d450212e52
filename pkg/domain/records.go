// Package domain defines the record kinds, their schemas and the persistence
// contract shared by every storage backend.
package domain

import "time"

// Record is the behaviour shared by every stored document.
type Record interface {
	RecordID() string
	CreatedTime() time.Time
	RecordKind() Kind
	// Stamp assigns store-owned identity.
	Stamp(id string, createdAt time.Time)
	// Apply merges schema fields from input, leaving absent fields untouched.
	Apply(Fields) error
	Clone() Record
}

// Meta carries the identity assigned by the store on create.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

func (m Meta) RecordID() string       { return m.ID }
func (m Meta) CreatedTime() time.Time { return m.CreatedAt }

func (m *Meta) Stamp(id string, createdAt time.Time) {
	m.ID = id
	m.CreatedAt = createdAt
}

// Recipe is a cooking recipe.
type Recipe struct {
	Meta
	Title        string `json:"title"`
	Ingredients  string `json:"ingredients"`
	Instructions string `json:"instructions"`
	Category     string `json:"category"`
}

func (*Recipe) RecordKind() Kind { return KindRecipe }

func (r *Recipe) Apply(f Fields) error {
	a := f.applier(KindRecipe)
	a.String("title", &r.Title)
	a.String("ingredients", &r.Ingredients)
	a.String("instructions", &r.Instructions)
	a.String("category", &r.Category)
	return a.Err()
}

func (r *Recipe) Clone() Record {
	cp := *r
	return &cp
}

// VideoEventType enumerates production stages on the video calendar.
type VideoEventType string

const (
	VideoEventFilming    VideoEventType = "filming"
	VideoEventEditing    VideoEventType = "editing"
	VideoEventPublishing VideoEventType = "publishing"
)

var videoEventTypes = []VideoEventType{VideoEventFilming, VideoEventEditing, VideoEventPublishing}

// VideoEvent is a scheduled production step.
type VideoEvent struct {
	Meta
	Title string         `json:"title"`
	Date  time.Time      `json:"date,omitzero"`
	Type  VideoEventType `json:"type,omitempty"`
}

func (*VideoEvent) RecordKind() Kind { return KindVideoEvent }

func (e *VideoEvent) Apply(f Fields) error {
	a := f.applier(KindVideoEvent)
	a.String("title", &e.Title)
	a.Date("date", &e.Date)
	applyEnum(a, "type", &e.Type, videoEventTypes)
	return a.Err()
}

func (e *VideoEvent) Clone() Record {
	cp := *e
	return &cp
}

// InventoryItem is a stocked ingredient or supply.
type InventoryItem struct {
	Meta
	Name              string     `json:"name"`
	Quantity          int        `json:"quantity"`
	ExpirationDate    *time.Time `json:"expirationDate,omitempty"`
	LowStockThreshold int        `json:"lowStockThreshold"`
}

func (*InventoryItem) RecordKind() Kind { return KindInventoryItem }

func (i *InventoryItem) Apply(f Fields) error {
	a := f.applier(KindInventoryItem)
	a.String("name", &i.Name)
	a.Int("quantity", &i.Quantity)
	a.OptionalDate("expirationDate", &i.ExpirationDate)
	a.Int("lowStockThreshold", &i.LowStockThreshold)
	return a.Err()
}

func (i *InventoryItem) Clone() Record {
	cp := *i
	if i.ExpirationDate != nil {
		t := *i.ExpirationDate
		cp.ExpirationDate = &t
	}
	return &cp
}

// LowStock reports whether quantity has fallen to the item's threshold.
func (i *InventoryItem) LowStock() bool {
	return i.Quantity <= i.LowStockThreshold
}

// TransactionType separates money in from money out.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

var transactionTypes = []TransactionType{TransactionIncome, TransactionExpense}

// Transaction is a single ledger entry.
type Transaction struct {
	Meta
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Type        TransactionType `json:"type,omitempty"`
	Date        time.Time       `json:"date,omitzero"`
}

func (*Transaction) RecordKind() Kind { return KindTransaction }

func (t *Transaction) Apply(f Fields) error {
	a := f.applier(KindTransaction)
	a.String("description", &t.Description)
	a.Number("amount", &t.Amount)
	applyEnum(a, "type", &t.Type, transactionTypes)
	a.Date("date", &t.Date)
	return a.Err()
}

func (t *Transaction) Clone() Record {
	cp := *t
	return &cp
}

// VideoTemplate is a reusable outline for a video.
type VideoTemplate struct {
	Meta
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Sections    []string `json:"sections"`
}

func (*VideoTemplate) RecordKind() Kind { return KindVideoTemplate }

func (v *VideoTemplate) Apply(f Fields) error {
	a := f.applier(KindVideoTemplate)
	a.String("name", &v.Name)
	a.String("description", &v.Description)
	a.Strings("sections", &v.Sections)
	if v.Sections == nil {
		v.Sections = []string{}
	}
	return a.Err()
}

func (v *VideoTemplate) Clone() Record {
	cp := *v
	cp.Sections = append([]string{}, v.Sections...)
	return &cp
}

// ResourceCategory groups educational material.
type ResourceCategory string

const (
	ResourceCooking ResourceCategory = "cooking"
	ResourceFilming ResourceCategory = "filming"
	ResourceEditing ResourceCategory = "editing"
)

var resourceCategories = []ResourceCategory{ResourceCooking, ResourceFilming, ResourceEditing}

// EducationalResource links to learning material.
type EducationalResource struct {
	Meta
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Link        string           `json:"link"`
	Category    ResourceCategory `json:"category,omitempty"`
}

func (*EducationalResource) RecordKind() Kind { return KindEducationalResource }

func (r *EducationalResource) Apply(f Fields) error {
	a := f.applier(KindEducationalResource)
	a.String("title", &r.Title)
	a.String("description", &r.Description)
	a.String("link", &r.Link)
	applyEnum(a, "category", &r.Category, resourceCategories)
	return a.Err()
}

func (r *EducationalResource) Clone() Record {
	cp := *r
	return &cp
}
