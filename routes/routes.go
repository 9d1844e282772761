package routes

import (
	"github.com/katchinsky/reflux-tg-bot/controllers"
	"github.com/katchinsky/reflux-tg-bot/middlewares"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Controllers struct {
	Analytics   *controllers.AnalyticsController
	Meals       *controllers.MealController
	Symptoms    *controllers.SymptomController
	Medications *controllers.MedicationController
	Categories  *controllers.CategoryController
	Users       *controllers.UserController
}

func SetupRouter(log *zap.SugaredLogger, ctrl Controllers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestLogger(log))

	api := r.Group("/")
	api.Use(middlewares.AuthMiddleware())
	{
		api.GET("/user/profile", ctrl.Users.GetProfile)
		api.PUT("/user/profile", ctrl.Users.UpdateProfile)

		api.POST("/meals", ctrl.Meals.LogMeal)
		api.GET("/meals", ctrl.Meals.ListMeals)
		api.GET("/meals/:id", ctrl.Meals.GetMeal)
		api.PUT("/meals/:id", ctrl.Meals.UpdateMeal)
		api.DELETE("/meals/:id", ctrl.Meals.DeleteMeal)

		api.POST("/symptoms", ctrl.Symptoms.LogSymptom)
		api.GET("/symptoms", ctrl.Symptoms.ListSymptoms)
		api.PUT("/symptoms/:id/resolve", ctrl.Symptoms.ResolveSymptom)
		api.DELETE("/symptoms/:id", ctrl.Symptoms.DeleteSymptom)

		api.POST("/medications", ctrl.Medications.LogMedication)
		api.GET("/medications", ctrl.Medications.ListMedications)
		api.DELETE("/medications/:id", ctrl.Medications.DeleteMedication)

		api.GET("/categories", ctrl.Categories.ListCategories)
		api.POST("/categories", ctrl.Categories.CreateCategory)

		insights := api.Group("/insights")
		{
			insights.GET("/categories", ctrl.Analytics.GetCategoryRollup)
			insights.GET("/symptoms", ctrl.Analytics.GetSymptomSeries)
			insights.GET("/medications", ctrl.Analytics.GetMedicationSummary)
			insights.GET("/correlations", ctrl.Analytics.GetCorrelations)
			insights.GET("/timeline", ctrl.Analytics.GetTimeline)
		}
	}

	return r
}
