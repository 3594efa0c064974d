package identifier

import (
	"path"
	"path/filepath"
	"strings"
)

// DefaultBucketRules are tested in order against a reference; the first
// substring found names the bucket. "misc" wins over "icons", and
// "mobileicons" is shadowed by "icons" and only kept so existing hosted
// folders line up.
var DefaultBucketRules = []string{
	"favicon",
	"slideshow",
	"gallery",
	"misc",
	"icons",
	"mobileicons",
}

// DefaultBucket is used when no rule matches.
const DefaultBucket = "images"

// Rules selects a bucket for a reference.
type Rules struct {
	Buckets       []string
	DefaultBucket string
}

// DefaultRules returns the stock bucket rules.
func DefaultRules() Rules {
	return Rules{
		Buckets:       append([]string(nil), DefaultBucketRules...),
		DefaultBucket: DefaultBucket,
	}
}

// Bucket returns the category bucket for ref.
func (r Rules) Bucket(ref string) string {
	for _, bucket := range r.Buckets {
		if bucket != "" && strings.Contains(ref, bucket) {
			return bucket
		}
	}
	if r.DefaultBucket == "" {
		return DefaultBucket
	}
	return r.DefaultBucket
}

// PublicID derives the logical identifier handed to the uploader:
// separators normalized, leading "../" and "./" markers and an "assets/"
// segment stripped, extension removed, bucket prefixed.
func (r Rules) PublicID(ref string) string {
	folder := r.Bucket(ref)

	id := strings.ReplaceAll(ref, `\`, "/")
	id = stripParentMarkers(id)
	id = strings.TrimPrefix(id, "assets/")
	id = strings.TrimSuffix(id, path.Ext(id))

	if id == "" {
		return folder
	}
	return folder + "/" + id
}

// ResolveLocalPath maps a reference as written in markup to a file under
// siteRoot. Pages live one level down and point at "../assets/...", so
// leading parent markers are dropped before joining.
func ResolveLocalPath(siteRoot string, ref string) string {
	rel := stripParentMarkers(strings.ReplaceAll(ref, `\`, "/"))
	return filepath.Join(siteRoot, filepath.FromSlash(rel))
}

func stripParentMarkers(p string) string {
	for {
		switch {
		case strings.HasPrefix(p, "../"):
			p = p[len("../"):]
		case strings.HasPrefix(p, "./"):
			p = p[len("./"):]
		default:
			return p
		}
	}
}
