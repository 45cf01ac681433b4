package entities

// Client is a buyer registered by a seller
type Client struct {
	ID       int64  `db:"id"`
	SellerID int64  `db:"seller_id"`
	Name     string `db:"name"`
}
