package schema

import _ "embed"

// ProjectCUE is the CUE source defining #Project.
//
//go:embed project.cue
var ProjectCUE []byte

// ProjectDefinition is the path of the project definition inside ProjectCUE.
const ProjectDefinition = "#Project"
