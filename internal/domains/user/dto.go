package user

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// UpdateProfileRequest - PATCH /api/users/:username
// Nil fields are left unchanged.
type UpdateProfileRequest struct {
	Description *string `json:"description"`
	Name        *string `json:"name"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Description,
			validation.Length(0, 2000).Error("описание не должно превышать 2000 символов"),
		),
		validation.Field(&r.Name,
			validation.NilOrNotEmpty.Error("имя не может быть пустым"),
			validation.Length(1, 100).Error("имя должно содержать от 1 до 100 символов"),
		),
	)
}

// ShareResponse - GET /api/users/:username/share
type ShareResponse struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}
