package pages

import (
	"sort"
	"strconv"

	"qcs/internal/views/components"
	"qcs/models"
)

// Counts holds the number of stored records per type.
type Counts struct {
	Suppliers int64
	Packages  int64
	Products  int64
	Batches   int64
	ColorData int64
}

// IndexSnapshot is everything the index page shows.
type IndexSnapshot struct {
	Counts        Counts
	RecentBatches []models.Batch
	UserName      string
	Authenticated bool
}

// NewIndexSnapshot orders batches newest manufacturing date first.
func NewIndexSnapshot(counts Counts, batches []models.Batch, userName string, authenticated bool) IndexSnapshot {
	sort.SliceStable(batches, func(i, j int) bool {
		return batches[i].ManufacturedOn().After(batches[j].ManufacturedOn())
	})
	return IndexSnapshot{
		Counts:        counts,
		RecentBatches: batches,
		UserName:      userName,
		Authenticated: authenticated,
	}
}

// Activity projects the recent batches into table rows.
func (s IndexSnapshot) Activity() []components.ActivityEntry {
	entries := make([]components.ActivityEntry, 0, len(s.RecentBatches))
	for _, b := range s.RecentBatches {
		product := ""
		if b.Product != nil {
			product = b.Product.String()
		}
		entries = append(entries, components.ActivityEntry{
			Name:      b.Number,
			Reference: product,
			Quantity:  strconv.FormatUint(uint64(b.Size), 10),
			UpdatedAt: models.FormatDate(b.ExpDate),
			Status:    attachmentStatus(b),
		})
	}
	return entries
}

func attachmentStatus(b models.Batch) string {
	switch {
	case b.Coa != nil && b.ColorSheet != nil:
		return "COA, color sheet"
	case b.Coa != nil:
		return "COA"
	case b.ColorSheet != nil:
		return "Color sheet"
	default:
		return "None"
	}
}
