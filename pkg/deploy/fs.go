package deploy

import "github.com/spf13/afero"

// Mocked out for unit testing.
var fs = afero.NewOsFs()
