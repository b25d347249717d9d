package validators

import "go.mongodb.org/mongo-driver/bson"

const (
	datePattern  = `^[0-9]{4}-[0-9]{2}-[0-9]{2}$`
	clockPattern = `^([01][0-9]|2[0-3]):[0-5][0-9]$`
)

var reservation = bson.M{
	"bsonType":             "object",
	"required":             []string{"name", "password"},
	"additionalProperties": false,
	"properties": bson.M{
		"name":     bson.M{"bsonType": "string"},
		"password": bson.M{"bsonType": "string"},
	},
}

// ReservationSnapshotValidator pins the snapshot shape: date keys holding
// time keys holding one reservation each.
var ReservationSnapshotValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "slots", "version", "updated_at"},
		"additionalProperties": false,
		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"slots": bson.M{
				"bsonType":             "object",
				"additionalProperties": false,
				"patternProperties": bson.M{
					datePattern: bson.M{
						"bsonType":             "object",
						"additionalProperties": false,
						"patternProperties": bson.M{
							clockPattern: reservation,
						},
					},
				},
			},
			"version": bson.M{
				"bsonType": []string{"long", "int"},
				"minimum":  0,
			},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
