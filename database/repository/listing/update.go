package listingRepo

import (
	"fmt"
	"reflect"
	"strings"

	"roaddarts/models"

	"go.mongodb.org/mongo-driver/bson"
)

// listingKeys are the top-level document keys of a stored listing.
var listingKeys = documentKeys(reflect.TypeOf(models.Listing{}))

func documentKeys(t reflect.Type) []string {
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name := strings.SplitN(t.Field(i).Tag.Get("bson"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		keys = append(keys, name)
	}
	return keys
}

// updateDocument sets every field of l and unsets the ones omitted as empty,
// so clearing an optional field on edit removes it from the stored listing.
func updateDocument(l *models.Listing) (bson.M, error) {
	raw, err := bson.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to encode listing: %w", err)
	}
	var set bson.M
	if err := bson.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("failed to encode listing: %w", err)
	}
	unset := bson.M{}
	for _, key := range listingKeys {
		if _, ok := set[key]; !ok {
			unset[key] = ""
		}
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update, nil
}
