package schema

// RepositoryType names a supported version control system.
type RepositoryType string

const (
	RepositoryTypeGit RepositoryType = "git"
	RepositoryTypeSVN RepositoryType = "svn"
)

// ProjectConfig mirrors #Project.
type ProjectConfig struct {
	Name         string                `json:"name"`
	Version      string                `json:"version"`
	DB           string                `json:"db,omitempty"`
	Repositories map[string]Repository `json:"repositories"`
	Merge        *MergeConfig          `json:"merge,omitempty"`
}

// Repository mirrors #Repository.
type Repository struct {
	Type         RepositoryType `json:"type"`
	URL          string         `json:"url"`
	Branches     []string       `json:"branches,omitempty"`
	ProjectSpace string         `json:"projectSpace,omitempty"`
}

// MergeConfig mirrors #Merge.
type MergeConfig struct {
	Diff  string `json:"diff,omitempty"`
	Merge string `json:"merge,omitempty"`
}
