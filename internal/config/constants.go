package config

// Default paths and endpoints
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./book-manager.db"

	// DefaultOpenLibraryBaseURL is the OpenLibrary API endpoint
	DefaultOpenLibraryBaseURL = "https://openlibrary.org"

	// DefaultOpenLibraryCoversURL is the OpenLibrary covers CDN endpoint
	DefaultOpenLibraryCoversURL = "https://covers.openlibrary.org"
)
