package testutil

// FixedGUID returns a source_guid generator that always yields guid, so
// posted payloads are byte-identical across runs.
//
// If guid is empty the generator returns "test-guid-default".
func FixedGUID(guid string) func() (string, error) {
	if guid == "" {
		guid = "test-guid-default"
	}
	return func() (string, error) {
		return guid, nil
	}
}
