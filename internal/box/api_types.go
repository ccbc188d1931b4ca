package box

// folderItemsResponse mirrors the structured metadata endpoint's listing
// payload.
type folderItemsResponse struct {
	TotalCount int        `json:"total_count"`
	Entries    []apiEntry `json:"entries"`
}

type apiEntry struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// postStreamData mirrors the embedded blob a rendered folder page carries
// under the Box.postStreamData marker. Only the fields the enumerator walks
// are declared; the blob's remaining structure is undocumented and volatile.
type postStreamData struct {
	Item struct {
		ItemCollection struct {
			Entries []embeddedEntry `json:"entries"`
		} `json:"item_collection"`
	} `json:"item"`
}

type embeddedEntry struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	DownloadURL string `json:"download_url"`
}
