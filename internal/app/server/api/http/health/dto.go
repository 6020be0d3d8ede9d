package health

type Input struct{}

type Output struct {
	Status int
	Body   Response
}

type Response struct {
	Status  string `json:"status" example:"OK" doc:"Состояние сервиса"`
	Storage string `json:"storage" example:"OK" doc:"Состояние хранилища"`
}
