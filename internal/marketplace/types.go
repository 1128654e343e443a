package marketplace

import "time"

// User is an account as returned by the marketplace API.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Address     string `json:"address,omitempty"`
}

// Category groups listings.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ListingImage carries one image of a listing.
type ListingImage struct {
	ImageURL string `json:"imageUrl"`
}

// Listing is a classified ad.
type Listing struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Condition   string         `json:"condition,omitempty"`
	Category    *Category      `json:"category,omitempty"`
	User        *User          `json:"user,omitempty"`
	Images      []ListingImage `json:"images,omitempty"`
}

// ListingRef is the listing projection embedded in conversation records.
type ListingRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Conversation summarizes the exchange between two users about one
// listing. The backend returns at most one entry per
// (listing, counterpart) pair; content holds the latest message body.
type Conversation struct {
	Listing   ListingRef `json:"listing"`
	Sender    User       `json:"sender"`
	Recipient User       `json:"recipient"`
	Content   string     `json:"content"`
	IsRead    bool       `json:"isRead"`
}

// Message is a single message inside a conversation, ordered by SentAt.
type Message struct {
	ID      int64     `json:"id"`
	Content string    `json:"content"`
	Sender  User      `json:"sender"`
	SentAt  time.Time `json:"sentAt"`
}

// RegisterParams is the new-account payload.
type RegisterParams struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Address     string `json:"address,omitempty"`
}

// SendMessageParams posts one message into a conversation.
type SendMessageParams struct {
	Content     string `json:"content"`
	RecipientID int64  `json:"recipientId"`
	ListingID   int64  `json:"listingId"`
}

// ListingParams is the create/update payload for a listing.
type ListingParams struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Condition   string  `json:"condition"`
	CategoryID  int64   `json:"categoryId"`
	UserID      int64   `json:"userId,omitempty"`
}

// UpdateUserParams is the profile-update payload.
type UpdateUserParams struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
}
