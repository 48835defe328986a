package analysispool

import (
	"fmt"
	"hash"
	"hash/fnv"
	"regexp"
	"sort"
)

type Request struct {
	Report string `json:"report"`
	Fight  int    `json:"fight"`
	Actors []int  `json:"actors,omitempty"`
	Format string `json:"format,omitempty"`
}

var reportCode = regexp.MustCompile(`^[a-zA-Z0-9]{8,32}$`)

func (r *Request) Validate() bool {
	switch {
	case !reportCode.MatchString(r.Report):
	case r.Fight <= 0:
	case len(r.Actors) > 24:
	case r.Format != "" && r.Format != "json" && r.Format != "text":
	default:
		return true
	}
	return false
}

func (r *Request) Hash() hash.Hash {
	actors := make([]int, len(r.Actors))
	copy(actors, r.Actors)
	sort.Ints(actors)

	h := fnv.New128a()
	fmt.Fprint(
		h,
		r.Report, "|||",
		r.Fight, "|||",
		actors, "|||",
	)
	return h
}
