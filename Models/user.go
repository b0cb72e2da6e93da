package Models

type User struct {
	Id         uint   `json:"id" gorm:"primaryKey"`
	Name       string `json:"name"`
	Username   string `json:"username" gorm:"not null;uniqueIndex"`
	Password   []byte `json:"-"`
	Permission int    `json:"permission"`
}
