package parquetread

import (
	"fmt"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// ValidateSchema checks that the Parquet schema contains all required
// columns. Names must match exactly; row types bind columns by tag.
func ValidateSchema(schema *parquet.Schema, required []string) error {
	columns := make(map[string]bool)
	for _, field := range schema.Fields() {
		columns[field.Name()] = true
	}

	var missing []string
	for _, col := range required {
		if !columns[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}
