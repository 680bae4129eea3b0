package model

import "go.mongodb.org/mongo-driver/bson"

// Document is a schemaless catalog or order record as stored in MongoDB.
type Document = bson.M

// OwnerField names the order field compared against the token email.
const OwnerField = "email"
