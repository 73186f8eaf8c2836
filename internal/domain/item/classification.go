package item

// Classification is what content analysis assigns to a new item.
type Classification struct {
	Type      Type
	Reason    string
	Platform  string
	TopicAuto string
	Keywords  []string
	Summary   string
	Price     *float64
}

// DefaultClassification is used when nothing at all can be inferred.
func DefaultClassification() Classification {
	return Classification{
		Type:      TypeText,
		Reason:    DefaultReason,
		Platform:  PlatformGeneric,
		TopicAuto: DefaultCategory,
	}
}

// Apply copies the classification onto f, keeping f's values where c is empty.
func (c Classification) Apply(f Fields) Fields {
	if c.Type != "" {
		f.Type = c.Type
	}
	if c.Reason != "" {
		f.Reason = c.Reason
	}
	if c.Platform != "" {
		f.Platform = c.Platform
	}
	if c.TopicAuto != "" {
		f.TopicAuto = c.TopicAuto
	}
	if len(c.Keywords) > 0 {
		f.Keywords = c.Keywords
	}
	if c.Summary != "" {
		f.Summary = c.Summary
	}
	if c.Price != nil {
		p := *c.Price
		f.Price = &p
	}
	return f
}
