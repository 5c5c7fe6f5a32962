package constants

// ObjectID Range Constants
const (
	// ObjectIDInvalid is never assigned to an entity
	ObjectIDInvalid = 0

	// ObjectIDStart is the first entity object ID (0x10000000 = 268435456).
	// IDs below it are reserved.
	ObjectIDStart = 0x10000000
)

// IsEntityObjectID returns true if objectID is in the entity range.
func IsEntityObjectID(objectID uint32) bool {
	return objectID >= ObjectIDStart
}
