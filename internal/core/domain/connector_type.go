package domain

// ConnectorType describes a supported document source connector.
type ConnectorType struct {
	// ID is the unique identifier (e.g. "filesystem", "gdrive").
	ID string

	// Name is the human-readable display name.
	Name string

	// Description provides a brief explanation of the connector.
	Description string

	// ConfigKeys lists the configuration fields required by this connector.
	ConfigKeys []ConfigKey
}

// ConfigKey describes a configuration field for a connector.
type ConfigKey struct {
	// Key is the configuration key name.
	Key string

	// Label is the human-readable label for display.
	Label string

	// Description explains what this field is for.
	Description string

	// Required indicates the field must be set.
	Required bool
}

// Connector type IDs.
const (
	ConnectorTypeFilesystem = "filesystem"
	ConnectorTypeDrive      = "gdrive"
)

// KnownConnectorTypes returns all supported connector types.
func KnownConnectorTypes() []ConnectorType {
	return []ConnectorType{
		{
			ID:          ConnectorTypeFilesystem,
			Name:        "Filesystem",
			Description: "Index documents from a local directory",
			ConfigKeys: []ConfigKey{
				{Key: "path", Label: "Directory path", Description: "Absolute path to the documents directory", Required: true},
			},
		},
		{
			ID:          ConnectorTypeDrive,
			Name:        "Google Drive",
			Description: "Index documents from a Google Drive folder",
			ConfigKeys: []ConfigKey{
				{Key: "folder_id", Label: "Folder ID", Description: "Drive folder containing the documents", Required: true},
				{Key: "credentials_path", Label: "Credentials file", Description: "Path to a service account JSON key", Required: true},
			},
		},
	}
}

// ConnectorTypeByID returns the connector type with the given ID.
// Returns nil if the ID is unknown.
func ConnectorTypeByID(id string) *ConnectorType {
	for _, ct := range KnownConnectorTypes() {
		if ct.ID == id {
			return &ct
		}
	}
	return nil
}
