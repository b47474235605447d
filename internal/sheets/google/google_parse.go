package google

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	ports "batchdesk/internal/sheets"
)

// parseValues converts a values matrix (as returned by Sheets API) into a table.
// An empty sheet yields an empty table with the default header. A non-empty sheet
// must carry an id column.
func parseValues(values [][]interface{}) (ports.Table, error) {
	version := versionOf(values)
	if len(values) == 0 {
		return ports.Table{Columns: append([]string(nil), ports.DefaultColumns...), Version: version}, nil
	}
	matrix := make([][]string, len(values))
	for i, row := range values {
		matrix[i] = toStrings(row)
	}
	t := ports.FromMatrix(matrix)
	if !t.HasColumn(ports.ColID) {
		return ports.Table{}, fmt.Errorf("unexpected header: missing %s; got headers=%v", ports.ColID, matrix[0])
	}
	t.Version = version
	return t, nil
}

// toValues renders t as a header row plus data rows for a values update.
func toValues(t ports.Table) [][]interface{} {
	m := t.Matrix()
	out := make([][]interface{}, len(m))
	for i, row := range m {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}

// versionOf hashes the normalised cell text of the sheet.
func versionOf(values [][]interface{}) string {
	h := sha256.New()
	for _, row := range values {
		cells := toStrings(row)
		// Trailing blanks are not returned consistently by the API.
		for len(cells) > 0 && cells[len(cells)-1] == "" {
			cells = cells[:len(cells)-1]
		}
		for _, c := range cells {
			h.Write([]byte(c))
			h.Write([]byte{0x1f})
		}
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// toStrings renders unformatted cells. Numbers are written in plain decimal
// so prices and serial dates never show up as 1e+06.
func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch val := v.(type) {
		case nil:
		case float64:
			out[i] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[i] = strconv.FormatBool(val)
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(val))
		}
	}
	return out
}

func decodeToken(b []byte) (*oauth2.Token, error) {
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("decode oauth token: %w", err)
	}
	return &tok, nil
}
