package image

import (
	errors "github.com/frahmantamala/issue-management/internal"
	"github.com/frahmantamala/issue-management/internal/core/common/validation"
)

type RegisterUploadDTO struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

func (dto RegisterUploadDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("filename", dto.Filename).NotBlank(errors.ErrCodeValidationFailed).MaxLength(255)
	v.Field("url", dto.URL).NotBlank(errors.ErrCodeValidationFailed).MaxLength(2048)
	return v.Validate()
}
