package item

import (
	"time"

	domitem "github.com/kailas-cloud/mindvault/internal/domain/item"
)

// itemDoc is the JSON document stored at <prefix>item:<id>.
// createdAt is unix millis so the NUMERIC index can range over it.
type itemDoc struct {
	ID           string    `json:"id"`
	OwnerKey     string    `json:"ownerKey"`
	Title        string    `json:"title"`
	URL          string    `json:"url,omitempty"`
	FileURL      string    `json:"fileUrl,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	Type         string    `json:"type"`
	Reason       string    `json:"reason,omitempty"`
	TopicAuto    string    `json:"topicAuto,omitempty"`
	TopicUser    []string  `json:"topicUser"`
	Category     string    `json:"category"`
	Keywords     []string  `json:"keywords"`
	Summary      string    `json:"summary,omitempty"`
	Platform     string    `json:"platform,omitempty"`
	Price        *float64  `json:"price,omitempty"`
	SelectedText string    `json:"selectedText,omitempty"`
	Description  string    `json:"description,omitempty"`
	Embedding    []float32 `json:"embedding,omitempty"`
	CreatedAt    int64     `json:"createdAt"`
}

func toDoc(it *domitem.Item) itemDoc {
	f := it.Fields()
	topicUser, keywords := f.TopicUser, f.Keywords
	if topicUser == nil {
		topicUser = []string{}
	}
	if keywords == nil {
		keywords = []string{}
	}
	return itemDoc{
		ID:           it.ID(),
		OwnerKey:     it.Owner(),
		Title:        f.Title,
		URL:          f.URL,
		FileURL:      f.FileURL,
		ImageURL:     f.ImageURL,
		Type:         string(f.Type),
		Reason:       f.Reason,
		TopicAuto:    f.TopicAuto,
		TopicUser:    topicUser,
		Category:     it.Category(),
		Keywords:     keywords,
		Summary:      f.Summary,
		Platform:     f.Platform,
		Price:        f.Price,
		SelectedText: f.SelectedText,
		Description:  f.Description,
		Embedding:    it.Embedding(),
		CreatedAt:    it.CreatedAt().UnixMilli(),
	}
}

func (d *itemDoc) toDomain() domitem.Item {
	f := domitem.Fields{
		Title:        d.Title,
		URL:          d.URL,
		FileURL:      d.FileURL,
		ImageURL:     d.ImageURL,
		Type:         domitem.Type(d.Type),
		Reason:       d.Reason,
		TopicAuto:    d.TopicAuto,
		TopicUser:    d.TopicUser,
		Keywords:     d.Keywords,
		Summary:      d.Summary,
		Platform:     d.Platform,
		Price:        d.Price,
		SelectedText: d.SelectedText,
		Description:  d.Description,
	}
	category := d.Category
	if category == "" {
		category = domitem.DeriveCategory(d.TopicAuto, d.TopicUser)
	}
	return domitem.Reconstruct(d.ID, d.OwnerKey, f, category, d.Embedding, time.UnixMilli(d.CreatedAt).UTC())
}
