package main

import "physioplan/internal/app"

// @title           PhysioPlan API
// @version         1.0
// @description     Injury intake and exercise-plan generation service.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
