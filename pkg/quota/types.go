package quota

import (
	"encoding/json"
	"strings"
	"time"
)

type timelineResponse struct {
	Data     []tweet `json:"data"`
	Includes struct {
		Media []media `json:"media"`
	} `json:"includes"`
	Meta struct {
		NewestID    string `json:"newest_id"`
		OldestID    string `json:"oldest_id"`
		ResultCount int    `json:"result_count"`
	} `json:"meta"`
	Errors []apiErrorItem `json:"errors"`
}

type tweet struct {
	ID            string         `json:"id"`
	Text          string         `json:"text"`
	Lang          string         `json:"lang"`
	CreatedAt     time.Time      `json:"created_at"`
	PublicMetrics *publicMetrics `json:"public_metrics"`
	Attachments   *struct {
		MediaKeys []string `json:"media_keys"`
	} `json:"attachments"`
}

type publicMetrics struct {
	RetweetCount    int64  `json:"retweet_count"`
	ReplyCount      int64  `json:"reply_count"`
	LikeCount       int64  `json:"like_count"`
	QuoteCount      int64  `json:"quote_count"`
	ImpressionCount *int64 `json:"impression_count"`
}

type media struct {
	MediaKey        string `json:"media_key"`
	Type            string `json:"type"`
	URL             string `json:"url"`
	PreviewImageURL string `json:"preview_image_url"`
}

// apiErrorItem is an entry of the api "errors" payload
type apiErrorItem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Type   string `json:"type"`
}

func (e apiErrorItem) message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

func notFound(items []apiErrorItem) bool {
	for _, e := range items {
		if strings.Contains(e.Title, "Not Found") || strings.Contains(e.Detail, "Not Found") ||
			strings.HasSuffix(e.Type, "resource-not-found") {
			return true
		}
	}
	return false
}

// errorMessage extracts a short description from an error response body
func errorMessage(body []byte) string {
	var payload struct {
		Title  string         `json:"title"`
		Detail string         `json:"detail"`
		Errors []apiErrorItem `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	switch {
	case payload.Detail != "":
		return payload.Detail
	case payload.Title != "":
		return payload.Title
	case len(payload.Errors) > 0:
		return payload.Errors[0].message()
	}
	return ""
}
