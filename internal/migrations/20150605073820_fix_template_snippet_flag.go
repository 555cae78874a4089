package migrations

import (
	"github.com/pressly/goose/v3"
)

// FixTemplateSnippetFlag makes templates.snippet a non-null boolean
// defaulting to false.
var FixTemplateSnippetFlag = BooleanBackfill{Table: "templates", Column: "snippet", Default: false}

func init() {
	goose.AddMigrationContext(FixTemplateSnippetFlag.UpTx, FixTemplateSnippetFlag.DownTx)
}
