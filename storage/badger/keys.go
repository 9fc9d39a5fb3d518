package badger

// Key prefixes for different data types
const (
	processedRecordPrefix = "procrec"
)

// makeProcessedRecordKey generates a key for a processed record by source id.
func makeProcessedRecordKey(sourceID string) []byte {
	return []byte(processedRecordPrefix + ":" + sourceID)
}
