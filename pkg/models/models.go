package models

// MediaKind classifies a gallery file
type MediaKind int

const (
	// Image is a raster or vector picture shown in the lightbox
	Image MediaKind = iota
	// Document is a PDF linked from a work card
	Document
)

func (k MediaKind) String() string {
	switch k {
	case Image:
		return "image"
	case Document:
		return "document"
	default:
		return "unknown"
	}
}

// MediaItem is a single public media file. Its path is its identity.
type MediaItem struct {
	Path    string    `json:"path"`
	Kind    MediaKind `json:"-"`
	AltText string    `json:"alt,omitempty"`
}

// Listing is the payload returned for a gallery folder
type Listing struct {
	Images []string `json:"images"`
	PDFs   []string `json:"pdfs"`
}

// EmptyListing returns a listing whose arrays encode as [] rather than null
func EmptyListing() Listing {
	return Listing{Images: []string{}, PDFs: []string{}}
}

// Items converts the image paths of a listing into media items with the given alt text
func (l Listing) Items(alt string) []MediaItem {
	items := make([]MediaItem, 0, len(l.Images))
	for _, p := range l.Images {
		items = append(items, MediaItem{Path: p, Kind: Image, AltText: alt})
	}
	return items
}

// FolderSummary describes one gallery folder under the media root
type FolderSummary struct {
	Key    string `json:"key"`
	Images int    `json:"images"`
	PDFs   int    `json:"pdfs"`
}

// ContactSubmission is a message sent through the contact form
type ContactSubmission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message"`
}

// ContactResponse is the JSON body returned by the contact endpoint
type ContactResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
