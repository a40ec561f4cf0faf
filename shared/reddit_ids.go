package shared

import (
	"fmt"
	"strings"
)

// Reddit "fullname" prefixes. Listing and vote endpoints want the prefixed
// form; submit endpoints hand back both.
const (
	KindPost    = "t3"
	KindComment = "t1"
)

const redditBase = "https://www.reddit.com"

// FullPostId returns the t3_-prefixed fullname for a submission id.
func FullPostId(id string) string {
	if strings.HasPrefix(id, KindPost+"_") {
		return id
	}
	return KindPost + "_" + id
}

// FullCommentId returns the t1_-prefixed fullname for a comment id.
func FullCommentId(id string) string {
	if strings.HasPrefix(id, KindComment+"_") {
		return id
	}
	return KindComment + "_" + id
}

// BarePostId strips a t3_/t1_ prefix, if present.
func BarePostId(id string) string {
	if ix := strings.IndexByte(id, '_'); ix == 2 {
		return id[3:]
	}
	return id
}

// PermalinkUrl turns a permalink path ("/r/sub/comments/...") into a full URL.
// Already-absolute URLs pass through unchanged.
func PermalinkUrl(permalink string) string {
	if strings.HasPrefix(permalink, "http://") || strings.HasPrefix(permalink, "https://") {
		return permalink
	}
	if !strings.HasPrefix(permalink, "/") {
		permalink = "/" + permalink
	}
	return fmt.Sprintf("%s%s", redditBase, permalink)
}
