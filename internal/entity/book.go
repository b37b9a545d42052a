package entity

// Book is the metadata sidecar stored next to the content file as
// <id>.json. ID equals the content filename, extension included.
type Book struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Genre       string `json:"genre"`
	Description string `json:"description"`
	Cover       string `json:"cover"`
	AddedBy     string `json:"added_by"`
	AddedAt     string `json:"added_at"`
	BookFile    string `json:"book_file,omitempty"`
	FileFormat  string `json:"file_format"`
}
