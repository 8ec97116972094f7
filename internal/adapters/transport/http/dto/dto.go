package dto

// RegisterDTO arrives either as multipart form fields or as JSON.
type RegisterDTO struct {
	FirstName   string `form:"firstName"   json:"firstName"   validate:"omitempty,max=50"`
	LastName    string `form:"lastName"    json:"lastName"    validate:"omitempty,max=50"`
	Email       string `form:"email"       json:"email"       validate:"required,email,max=254"`
	Password    string `form:"password"    json:"password"    validate:"required,maxbytes=72"`
	PicturePath string `form:"picturePath" json:"picturePath" validate:"omitempty,max=255"`
}

type LoginDTO struct {
	Email    string `form:"email"    json:"email"    validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required"`
}

type CreatePostDTO struct {
	Description string `form:"description" json:"description" validate:"max=2000"`
	PicturePath string `form:"picturePath" json:"picturePath" validate:"omitempty,max=255"`
}
