package main

import (
	"log"
	"os"

	"github.com/katchinsky/reflux-tg-bot/config"
	"github.com/katchinsky/reflux-tg-bot/controllers"
	"github.com/katchinsky/reflux-tg-bot/routes"
	"github.com/katchinsky/reflux-tg-bot/services"
)

func main() {
	config.InitDB()

	logger, err := config.NewLogger(os.Getenv("APP_ENV"))
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	catSvc := services.NewCategoryService(config.DB)
	timelineSvc := services.NewTimelineService(config.DB)
	analyticsSvc := services.NewAnalyticsService(timelineSvc, catSvc)

	ctrl := routes.Controllers{
		Analytics:   controllers.NewAnalyticsController(analyticsSvc),
		Meals:       controllers.NewMealController(services.NewMealService(config.DB, catSvc)),
		Symptoms:    controllers.NewSymptomController(services.NewSymptomService(config.DB)),
		Medications: controllers.NewMedicationController(services.NewMedicationService(config.DB)),
		Categories:  controllers.NewCategoryController(catSvc),
		Users:       controllers.NewUserController(services.NewUserService(config.DB)),
	}

	r := routes.SetupRouter(logger, ctrl)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Infow("listening", "port", port)
	if err := r.Run(":" + port); err != nil {
		logger.Fatalw("server exited", "err", err)
	}
}
