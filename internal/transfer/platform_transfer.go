package transfer

type GraphMediaResponse struct {
	ID string `json:"id"`
}

type GraphStatusResponse struct {
	StatusCode string `json:"status_code"`
}

type GraphErrorResponse struct {
	Error struct {
		Message        string `json:"message"`
		Type           string `json:"type"`
		Code           int    `json:"code"`
		ErrorSubcode   int    `json:"error_subcode"`
		IsTransient    bool   `json:"is_transient"`
		ErrorUserTitle string `json:"error_user_title"`
		ErrorUserMsg   string `json:"error_user_msg"`
		FbtraceID      string `json:"fbtrace_id"`
	} `json:"error"`
}

type FacebookPageResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
}

type FacebookPhotoResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
}

type PinterestMediaSource struct {
	SourceType string `json:"source_type,omitempty"`
	URL        string `json:"url,omitempty"`
	MediaID    string `json:"media_id,omitempty"`
}

type PinterestPinRequest struct {
	BoardID     string               `json:"board_id"`
	Title       string               `json:"title,omitempty"`
	Description string               `json:"description,omitempty"`
	Link        string               `json:"link,omitempty"`
	MediaSource PinterestMediaSource `json:"media_source"`
}

type PinterestMediaResponse struct {
	ID string `json:"id"`
}

type PinterestPinResponse struct {
	ID string `json:"id"`
}

type PinterestErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
