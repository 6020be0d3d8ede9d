package user

type BaseRequest struct {
	Login    string `json:"login" minLength:"3" maxLength:"32" doc:"Логин"`
	Password string `json:"password" minLength:"8" maxLength:"72" doc:"Пароль учетной записи"`
}

type registerInput struct {
	Body BaseRequest
}

type registerOutput struct {
	Body RegisterResponse
}

type RegisterResponse struct {
	ID     int    `json:"user_id"`
	Status string `json:"status"`
}

type loginInput struct {
	Body BaseRequest
}

type loginOutput struct {
	Body LoginResponse
}

type LoginResponse struct {
	Token  string `json:"token"`
	Status string `json:"status"`
}

type logoutOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}
