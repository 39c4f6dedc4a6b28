package ds

import "time"

type GalleryImage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UploaderID uint      `gorm:"not null;index" json:"uploader_id"`
	ImageKey   string    `gorm:"type:varchar(200);not null" json:"image_key"`
	Caption    string    `gorm:"type:varchar(200)" json:"caption"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`

	ImageURL string `gorm:"-" json:"image_url"`

	Uploader User `gorm:"foreignKey:UploaderID" json:"uploader"`
}
