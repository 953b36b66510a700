package bookings

import (
	"slices"
	"time"
)

// Activities is the list of activities that can be booked.
var Activities = []string{
	"Yoga",
	"Gym",
	"Gymnastics",
	"Aqua Aerobics",
	"Zumba",
	"Kickboxing",
	"Swimming",
	"Dance",
	"Pilates",
	"Boxing",
}

// IsActivity reports whether name is a bookable activity.
func IsActivity(name string) bool {
	return slices.Contains(Activities, name)
}

type Booking struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Activity  string    `json:"activity" bson:"activity"`
	Date      time.Time `json:"date" bson:"date"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
