package services

import (
	"github.com/cppla/lostfound/models"
	"github.com/cppla/lostfound/utils"
)

var postFields = map[string]FieldKind{
	"title":      FieldText,
	"content":    FieldText,
	"image_urls": FieldImages,
}

func withPostFields(extra map[string]FieldKind) map[string]FieldKind {
	m := make(map[string]FieldKind, len(postFields)+len(extra))
	for k, v := range postFields {
		m[k] = v
	}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

var itemSearchColumns = []string{"title", "item_name", "location", "item_time", "content"}

func prepareItem(d *models.ItemDetails) error {
	d.ItemName = utils.SanitizeText(d.ItemName)
	d.Location = utils.SanitizeText(d.Location)
	d.ItemTime = utils.SanitizeText(d.ItemTime)
	switch {
	case d.ItemName == "":
		return validationError("item_name is required")
	case d.Location == "":
		return validationError("location is required")
	case d.ItemTime == "":
		return validationError("item_time is required")
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }

// LostItems is the board of items people are looking for.
var LostItems = Category[models.LostItemPost, *models.LostItemPost]{
	Name:          "lost_item",
	SearchColumns: itemSearchColumns,
	Updatable: withPostFields(map[string]FieldKind{
		"item_name": FieldText,
		"location":  FieldText,
		"item_time": FieldText,
		"status":    FieldBool,
	}),
	Prepare: func(p *models.LostItemPost) error { return prepareItem(&p.ItemDetails) },
	Defaults: func(p *models.LostItemPost) {
		if p.Status == nil {
			p.Status = boolPtr(true)
		}
	},
}

// FoundItems is the board of items someone picked up.
var FoundItems = Category[models.FoundItemPost, *models.FoundItemPost]{
	Name:          "found_item",
	SearchColumns: itemSearchColumns,
	Updatable: withPostFields(map[string]FieldKind{
		"item_name": FieldText,
		"location":  FieldText,
		"item_time": FieldText,
		"resolved":  FieldBool,
		"status":    FieldBool,
	}),
	Prepare: func(p *models.FoundItemPost) error { return prepareItem(&p.ItemDetails) },
	Defaults: func(p *models.FoundItemPost) {
		if p.Resolved == nil {
			p.Resolved = boolPtr(false)
		}
		if p.Status == nil {
			p.Status = boolPtr(true)
		}
	},
}

// ShareItems is the giveaway board.
var ShareItems = Category[models.ShareItemPost, *models.ShareItemPost]{
	Name:          "share_item",
	SearchColumns: []string{"title", "content"},
	Updatable:     withPostFields(map[string]FieldKind{"status": FieldBool}),
	Defaults: func(p *models.ShareItemPost) {
		if p.Status == nil {
			p.Status = boolPtr(false)
		}
	},
}

// Notices is the admin announcement board.
var Notices = Category[models.NoticePost, *models.NoticePost]{
	Name:          "notice",
	SearchColumns: []string{"title", "content"},
	Updatable:     withPostFields(nil),
	AdminOnly:     true,
}
