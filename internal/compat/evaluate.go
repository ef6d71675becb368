package compat

// Evaluate decides which runtimes in the profile fail a capability record.
// A runtime with no declared minimum fails unconditionally; a declared
// minimum fails when the profile's required version is below it. The result
// preserves profile order so reports are deterministic. An empty result
// means the capability is satisfied everywhere and produces no Finding.
func Evaluate(rec CapabilityRecord, profile TargetProfile) []RuntimeFailure {
	var failing []RuntimeFailure
	for _, t := range profile {
		min, ok := rec.Support[t.Runtime]
		if !ok {
			failing = append(failing, RuntimeFailure{
				Runtime:  t.Runtime,
				Required: t.Version,
			})
			continue
		}
		if CompareVersions(t.Version, min) < 0 {
			failing = append(failing, RuntimeFailure{
				Runtime:          t.Runtime,
				Required:         t.Version,
				MinimumSupported: min,
			})
		}
	}
	return failing
}
