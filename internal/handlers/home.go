package handlers

// BuildHomeData constructs the default view model for the landing page.
func BuildHomeData(lang string) PageData {
	return PageData{
		Title: "Bolajon Toys",
		Lang:  lang,
		SEO: SEOData{
			Title:       "Bolajon Toys",
			Description: "Bolajon - toys and games for children",
		},
	}
}

// SEOData is a lightweight copy to avoid importing the seo package here.
type SEOData struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          struct {
		Title       string
		Description string
		Image       string
		Type        string
		URL         string
		SiteName    string
	}
	Twitter struct {
		Card  string
		Site  string
		Image string
	}
	Alternates []struct{ Href, Hreflang string }
	JSONLD     []string
}
