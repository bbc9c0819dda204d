package bird

// Raw JSON shapes emitted by the bird CLI with --json. Only the fields the
// pipeline consumes are mapped; everything else is ignored on decode.

type tweetPayload struct {
	ID                string        `json:"id"`
	Text              string        `json:"text"`
	CreatedAt         string        `json:"createdAt"`
	AuthorID          string        `json:"authorId"`
	Author            tweetAuthor   `json:"author"`
	ReplyCount        int           `json:"replyCount"`
	RetweetCount      int           `json:"retweetCount"`
	LikeCount         int           `json:"likeCount"`
	ConversationID    string        `json:"conversationId"`
	InReplyToStatusID string        `json:"inReplyToStatusId"`
	Entities          tweetEntities `json:"entities"`
}

type tweetAuthor struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

type tweetEntities struct {
	URLs []tweetURL `json:"urls"`
}

type tweetURL struct {
	ExpandedURL string `json:"expanded_url"`
}

// Some commands wrap the tweet list in an envelope with a pagination cursor.
type tweetEnvelope struct {
	Tweets     []tweetPayload `json:"tweets"`
	Data       []tweetPayload `json:"data"`
	NextCursor string         `json:"nextCursor"`
}
