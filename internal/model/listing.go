package model

import "time"

// ListingStatus is the public visibility flag shared by all listings.
type ListingStatus string

const (
    ListingActive   ListingStatus = "active"
    ListingInactive ListingStatus = "inactive"
)

// Attraction is a row of `attractions`.
type Attraction struct {
    ID          uint64        `json:"id"`
    Name        string        `json:"name"`
    Description string        `json:"description"`
    Location    string        `json:"location"`
    Category    string        `json:"category"`
    Rating      float64       `json:"rating"`
    Image       *string       `json:"image,omitempty"`
    Status      ListingStatus `json:"status"`
    CreatedAt   time.Time     `json:"created_at"`
    UpdatedAt   time.Time     `json:"updated_at"`
}

// Activity is a row of `activities` plus its FAQ entries in display order.
type Activity struct {
    ID          uint64        `json:"id"`
    Name        string        `json:"name"`
    Description string        `json:"description"`
    Location    string        `json:"location"`
    Duration    string        `json:"duration"`
    Rating      float64       `json:"rating"`
    Image       *string       `json:"image,omitempty"`
    Status      ListingStatus `json:"status"`
    CreatedAt   time.Time     `json:"created_at"`
    UpdatedAt   time.Time     `json:"updated_at"`
    FAQs        []ActivityFAQ `json:"faqs,omitempty"`
}

// ActivityFAQ is a row of `activity_faqs`.
type ActivityFAQ struct {
    ID         uint64 `json:"id"`
    ActivityID uint64 `json:"-"`
    Question   string `json:"question"`
    Answer     string `json:"answer"`
    SortOrder  int    `json:"sort_order"`
}

// Accommodation is a row of `accommodations`.
type Accommodation struct {
    ID            uint64        `json:"id"`
    Name          string        `json:"name"`
    Description   string        `json:"description"`
    Address       string        `json:"address"`
    Type          string        `json:"type"`
    PriceRange    string        `json:"price_range"`
    ContactNumber *string       `json:"contact_number,omitempty"`
    Rating        float64       `json:"rating"`
    Image         *string       `json:"image,omitempty"`
    Status        ListingStatus `json:"status"`
    CreatedAt     time.Time     `json:"created_at"`
    UpdatedAt     time.Time     `json:"updated_at"`
}

// ContactMessage is a row of `contact_messages`.
type ContactMessage struct {
    ID        uint64    `json:"id"`
    Name      string    `json:"name"`
    Email     string    `json:"email"`
    Subject   string    `json:"subject"`
    Message   string    `json:"message"`
    CreatedAt time.Time `json:"created_at"`
}
