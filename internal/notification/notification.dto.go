package notification

type RegisterDeviceRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"required,oneof=ios android web"`
}

type RegisterDeviceResponse struct {
	Success bool `json:"success"`
}
