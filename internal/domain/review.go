package domain

// MaxRating is the top of the product review star scale.
const MaxRating = 5

// ReviewQuery is the product review a visitor submitted, as carried by the
// query string of the review confirmation page.
type ReviewQuery struct {
	ProductName   string   `form:"productName"`
	InstallDate   string   `form:"installDate"`
	Rating        string   `form:"rating"`
	Features      []string `form:"features"`
	WrittenReview string   `form:"writtenReview"`
	UserName      string   `form:"userName"`
}

// ReviewSummary is the rendered confirmation of a submitted review together
// with the visitor's running review counter.
type ReviewSummary struct {
	Found         bool     `json:"found"`
	Message       string   `json:"message,omitempty"`
	ProductName   string   `json:"product_name,omitempty"`
	InstallDate   string   `json:"install_date,omitempty"`
	Rating        int      `json:"rating"`
	Stars         string   `json:"stars,omitempty"`
	Features      []string `json:"features,omitempty"`
	WrittenReview string   `json:"written_review,omitempty"`
	UserName      string   `json:"user_name,omitempty"`
	HTML          string   `json:"html"`
	ReviewCount   int      `json:"review_count"`
}
