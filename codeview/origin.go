package codeview

import (
	"github.com/cespare/xxhash/v2"
	"github.com/oligo/mdhl/scan"
)

// origin identifies what a group of decorations was built from. It is
// stamped as the Source of every decoration of a region, so a region whose
// origin did not change is not fetched again.
type origin struct {
	kind scan.Kind
	lang string
	hide bool
	sum  uint64
}

func originOf(item scan.WorkItem) origin {
	return origin{
		kind: item.Region.Kind,
		lang: item.Region.Language,
		hide: item.HideLang,
		sum:  xxhash.Sum64String(item.Region.Content),
	}
}
