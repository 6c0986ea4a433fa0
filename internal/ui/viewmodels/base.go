package viewmodels

type BaseVM struct {
	Title       string
	Active      string
	UserName    string
	ContentTmpl string
	BaseURL     string
	Debug       bool
}

// ErrorVM fills the standalone error page.
type ErrorVM struct {
	Title   string
	Message string
}
