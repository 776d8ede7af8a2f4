package models

type Config struct {
	Key string `json:"key" gorm:"primaryKey;type:text;"`
	Val string `json:"val" gorm:"type:text;"`
}

func (Config) TableName() string {
	return "configs"
}
