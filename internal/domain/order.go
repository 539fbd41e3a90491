package domain

// Order is one purchase record. The id is assigned by the store on save and
// the user fields are snapshotted from the directory at creation time, so the
// record stays intact even if the directory entry changes later.
type Order struct {
	OrderID   int64  `json:"order_id"`
	ProductID int64  `json:"product_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// User is a read-only directory entry; this service never writes users.
type User struct {
	Email     string
	FirstName string
	LastName  string
}
