package dict

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// ContentPrefix is the path prefix under which entries are served.
const ContentPrefix = "/content/"

// ContentURL returns the server-relative URL of an entry:
// /content/{sourceID}/{key}?blob={id}#{fragment}.
func ContentURL(e Entry) string {
	u := url.URL{
		Path:     ContentPrefix + e.SourceID + "/" + e.Key,
		RawQuery: url.Values{"blob": {strconv.FormatInt(e.BlobID, 10)}}.Encode(),
		Fragment: e.Fragment,
	}
	return u.String()
}

// ParseContentURL is the inverse of ContentURL. It accepts absolute URLs and
// a missing blob parameter (BlobID 0 means "first entry with this key").
func ParseContentURL(raw string) (Entry, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Entry{}, err
	}
	rest, ok := strings.CutPrefix(u.Path, ContentPrefix)
	if !ok {
		return Entry{}, errors.New("not a content url: " + raw)
	}
	sourceID, key, ok := strings.Cut(rest, "/")
	if !ok || sourceID == "" || key == "" {
		return Entry{}, errors.New("content url needs source and key: " + raw)
	}
	e := Entry{SourceID: sourceID, Key: key, Fragment: u.Fragment}
	if b := u.Query().Get("blob"); b != "" {
		id, err := strconv.ParseInt(b, 10, 64)
		if err != nil {
			return Entry{}, errors.New("bad blob id in " + raw)
		}
		e.BlobID = id
	}
	return e, nil
}
