package export

import "encoding/json"

// JSON renders records as a pretty-printed array; keys keep record order.
// An empty set renders as [].
func JSON(records []Record) (string, error) {
	if records == nil {
		records = []Record{}
	}
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
