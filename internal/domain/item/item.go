// Package item holds the SavedItem aggregate: anything a user captured into the vault.
package item

import (
	"fmt"
	"strings"
	"time"
)

// MaxKeywords caps machine-extracted keywords per item.
const MaxKeywords = 5

// DefaultCategory is used when neither user tags nor an automatic topic exist.
const DefaultCategory = "general"

// Field names shared by the store schema, filter conditions and record evaluation.
const (
	FieldOwner        = "ownerKey"
	FieldTitle        = "title"
	FieldURL          = "url"
	FieldType         = "type"
	FieldReason       = "reason"
	FieldTopicAuto    = "topicAuto"
	FieldTopicUser    = "topicUser"
	FieldCategory     = "category"
	FieldKeywords     = "keywords"
	FieldSummary      = "summary"
	FieldPlatform     = "platform"
	FieldPrice        = "price"
	FieldSelectedText = "selectedText"
	FieldDescription  = "description"
	FieldCreatedAt    = "createdAt"
)

// Fields is the mutable input used to build an item.
type Fields struct {
	Title        string
	URL          string
	FileURL      string
	ImageURL     string
	Type         Type
	Reason       string
	TopicAuto    string
	TopicUser    []string
	Keywords     []string
	Summary      string
	Platform     string
	Price        *float64
	SelectedText string
	Description  string
}

// Item is a saved record (immutable value object).
type Item struct {
	id        string
	owner     string
	fields    Fields
	category  string
	embedding []float32
	createdAt time.Time
}

// New validates and creates an Item.
// Title and owner must be non-empty; an empty type becomes text; keywords are capped at MaxKeywords.
func New(id, owner string, f Fields, embedding []float32, createdAt time.Time) (Item, error) {
	if id == "" {
		return Item{}, fmt.Errorf("item ID is required")
	}
	if strings.TrimSpace(owner) == "" {
		return Item{}, fmt.Errorf("owner key is required")
	}
	f.Title = strings.TrimSpace(f.Title)
	if f.Title == "" {
		return Item{}, fmt.Errorf("title is required")
	}
	if f.Type == "" {
		f.Type = TypeText
	}
	if !f.Type.Valid() {
		return Item{}, fmt.Errorf("unknown item type %q", f.Type)
	}
	if f.Platform == "" {
		f.Platform = PlatformGeneric
	}
	if f.TopicAuto == "" {
		f.TopicAuto = DefaultCategory
	}
	f.TopicUser = compact(f.TopicUser, 0)
	f.Keywords = compact(f.Keywords, MaxKeywords)

	return Item{
		id:        id,
		owner:     owner,
		fields:    cloneFields(f),
		category:  DeriveCategory(f.TopicAuto, f.TopicUser),
		embedding: embedding,
		createdAt: createdAt.UTC(),
	}, nil
}

// Reconstruct creates an Item without validation (storage hydration).
func Reconstruct(id, owner string, f Fields, category string, embedding []float32, createdAt time.Time) Item {
	return Item{id: id, owner: owner, fields: f, category: category, embedding: embedding, createdAt: createdAt}
}

// DeriveCategory returns the first user tag, else topicAuto, else DefaultCategory.
func DeriveCategory(topicAuto string, topicUser []string) string {
	for _, t := range topicUser {
		if t = strings.TrimSpace(t); t != "" {
			return t
		}
	}
	if topicAuto != "" {
		return topicAuto
	}
	return DefaultCategory
}

// EmbeddingText is the text an item's embedding is computed from.
func EmbeddingText(f Fields) string {
	parts := []string{f.Title, f.Description, f.SelectedText, f.Summary, f.Reason, strings.Join(f.Keywords, " ")}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// ID returns the item identifier.
func (i *Item) ID() string { return i.id }

// Owner returns the owning user key.
func (i *Item) Owner() string { return i.owner }

// Title returns the display title.
func (i *Item) Title() string { return i.fields.Title }

// URL returns the primary link, if any.
func (i *Item) URL() string { return i.fields.URL }

// FileURL returns the uploaded file locator, if any.
func (i *Item) FileURL() string { return i.fields.FileURL }

// ImageURL returns the image locator, if any.
func (i *Item) ImageURL() string { return i.fields.ImageURL }

// Type returns the item type.
func (i *Item) Type() Type { return i.fields.Type }

// Reason returns the intent label.
func (i *Item) Reason() string { return i.fields.Reason }

// TopicAuto returns the machine-assigned topic.
func (i *Item) TopicAuto() string { return i.fields.TopicAuto }

// TopicUser returns user-assigned tags.
func (i *Item) TopicUser() []string { return i.fields.TopicUser }

// Category returns the unified grouping facet.
func (i *Item) Category() string { return i.category }

// Keywords returns machine-extracted keywords.
func (i *Item) Keywords() []string { return i.fields.Keywords }

// Summary returns the machine-generated description.
func (i *Item) Summary() string { return i.fields.Summary }

// Platform returns the detected source platform.
func (i *Item) Platform() string { return i.fields.Platform }

// Price returns the product price when known.
func (i *Item) Price() (float64, bool) {
	if i.fields.Price == nil {
		return 0, false
	}
	return *i.fields.Price, true
}

// SelectedText returns the raw captured text.
func (i *Item) SelectedText() string { return i.fields.SelectedText }

// Description returns the note or extracted text.
func (i *Item) Description() string { return i.fields.Description }

// Embedding returns the stored vector; empty when generation failed.
func (i *Item) Embedding() []float32 { return i.embedding }

// CreatedAt returns the creation timestamp.
func (i *Item) CreatedAt() time.Time { return i.createdAt }

// Fields returns a copy of the descriptive fields.
func (i *Item) Fields() Fields { return cloneFields(i.fields) }

// Values implements filter.Record.
func (i *Item) Values(field string) []string {
	f := &i.fields
	switch field {
	case FieldOwner:
		return []string{i.owner}
	case FieldTitle:
		return []string{f.Title}
	case FieldURL:
		return []string{f.URL}
	case FieldType:
		return []string{string(f.Type)}
	case FieldReason:
		return []string{f.Reason}
	case FieldTopicAuto:
		return []string{f.TopicAuto}
	case FieldTopicUser:
		return f.TopicUser
	case FieldCategory:
		return []string{i.category}
	case FieldKeywords:
		return f.Keywords
	case FieldSummary:
		return []string{f.Summary}
	case FieldPlatform:
		return []string{f.Platform}
	case FieldSelectedText:
		return []string{f.SelectedText}
	case FieldDescription:
		return []string{f.Description}
	}
	return nil
}

// Number implements filter.Record. createdAt is reported in unix millis.
func (i *Item) Number(field string) (float64, bool) {
	switch field {
	case FieldPrice:
		return i.Price()
	case FieldCreatedAt:
		return float64(i.createdAt.UnixMilli()), true
	}
	return 0, false
}

func compact(in []string, limit int) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		out = append(out, s)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func cloneFields(f Fields) Fields {
	c := f
	c.TopicUser = append([]string(nil), f.TopicUser...)
	c.Keywords = append([]string(nil), f.Keywords...)
	if f.Price != nil {
		p := *f.Price
		c.Price = &p
	}
	return c
}
