package catalog

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// videoPathPattern matches a platform video id segment such as
// /video/BV1xx411c7mD or /video/av170001.
var videoPathPattern = regexp.MustCompile(`/video/((?:[Bb][Vv][0-9A-Za-z]+)|(?:av\d+))`)

// CanonicalURL returns the normalized form of a media URL, used solely for
// duplicate detection. A platform video URL is rewritten to "video/<id>"
// plus an explicit page number when present, dropping any time-range
// fragment. All other URLs have their time-range query parameter stripped.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if m := videoPathPattern.FindStringSubmatch(raw); m != nil {
		canonical := "video/" + m[1]
		if page := queryParam(raw, "p"); page != "" {
			canonical += "?p=" + page
		}
		return canonical
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Has("t") {
		q.Del("t")
		u.RawQuery = q.Encode()
	}
	u.Fragment = ""
	return u.String()
}

// MediaKey returns the canonical URL without page selection. Two URLs with
// the same media key refer to the same underlying media, possibly a
// different page or segment.
func MediaKey(raw string) string {
	canonical := CanonicalURL(raw)
	if i := strings.Index(canonical, "?"); i >= 0 {
		return canonical[:i]
	}
	return canonical
}

// TimeRange is a playback window extracted from a URL's time-range
// parameter, in seconds. End is zero when the range is open-ended.
type TimeRange struct {
	Start int `json:"start"`
	End   int `json:"end,omitempty"`
}

// ParseTimeRange extracts the t=start-end (or t=start) query parameter from
// a URL.
func ParseTimeRange(raw string) (TimeRange, bool) {
	param := queryParam(raw, "t")
	if param == "" {
		return TimeRange{}, false
	}

	var tr TimeRange
	parts := strings.SplitN(param, "-", 2)
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return TimeRange{}, false
	}
	tr.Start = start
	if len(parts) == 2 {
		if end, err := strconv.Atoi(parts[1]); err == nil {
			tr.End = end
		}
	}
	return tr, true
}

// queryParam extracts one query parameter from a raw URL, tolerating
// inputs that do not parse as absolute URLs.
func queryParam(raw, key string) string {
	i := strings.Index(raw, "?")
	if i < 0 {
		return ""
	}
	values, err := url.ParseQuery(raw[i+1:])
	if err != nil {
		return ""
	}
	return values.Get(key)
}
