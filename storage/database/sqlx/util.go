package sqlxrepos

import (
	"strconv"

	"github.com/google/uuid"
)

// isUUID avoids sending ids postgres would reject with a cast error; those can only be "not found".
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func itoa(i int) string { return strconv.Itoa(i) }
