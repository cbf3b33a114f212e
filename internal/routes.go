package internal

import (
	"citystate/internal/controllers"
	"citystate/internal/providers"
	"net/http"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/signup", http.HandlerFunc(apiController.Signup))
	routers.Post("/login", http.HandlerFunc(apiController.Login))
	routers.Post("/guest", http.HandlerFunc(apiController.Guest))
	routers.Post("/logout", http.HandlerFunc(apiController.Logout))
	routers.Get("/capabilities", http.HandlerFunc(apiController.Capabilities))
	routers.Get("/flags", http.HandlerFunc(apiController.GetFlags))
	routers.Post("/flags", http.HandlerFunc(apiController.SetFlag))
	routers.Post("/events", http.HandlerFunc(apiController.ReceiveEvent))
	routers.Get("/campaigns", http.HandlerFunc(apiController.GetCampaigns))
	routers.Get("/placements", http.HandlerFunc(apiController.ListPlacements))
	routers.Get("/placement", http.HandlerFunc(apiController.GetPlacement))
	routers.Post("/placement", http.HandlerFunc(apiController.UpsertPlacement))
	routers.Post("/rent", http.HandlerFunc(apiController.RentPlacement))
	routers.Post("/creative", http.HandlerFunc(apiController.UploadCreative))
	routers.Get("/admin/users", http.HandlerFunc(apiController.ListUsers))
	routers.Post("/admin/role", http.HandlerFunc(apiController.SetRole))
	routers.Post("/admin/block", http.HandlerFunc(apiController.SetBlocked))
	routers.Post("/admin/delete", http.HandlerFunc(apiController.DeleteUser))
	routers.Get("/admin/log", http.HandlerFunc(apiController.GetAdminLog))
	routers.Get("/leaderboard", http.HandlerFunc(apiController.GetLeaderboard))
	return routers
}
