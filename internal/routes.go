package internal

import (
	"net/http"

	"wiltd/internal/controllers"
	"wiltd/internal/providers"
	"wiltd/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/feed", http.HandlerFunc(apiController.GetFeed))
	routers.Post("/feed/refresh", http.HandlerFunc(apiController.RefreshFeed))
	routers.Post("/feed/more", http.HandlerFunc(apiController.LoadMoreFeed))
	routers.Get("/history", http.HandlerFunc(apiController.GetHistory))
	routers.Post("/history/more", http.HandlerFunc(apiController.LoadMoreHistory))
	routers.Get("/profile/top-artist", http.HandlerFunc(apiController.GetTopArtist))
	routers.Get("/profile/top-track", http.HandlerFunc(apiController.GetTopTrack))
	routers.Get("/artist/activity", http.HandlerFunc(apiController.GetArtistActivity))
	routers.Get("/search", http.HandlerFunc(apiController.SearchArtists))
	routers.Get("/listen-later", http.HandlerFunc(apiController.GetListenLater))
	routers.Post("/listen-later/add", http.HandlerFunc(apiController.AddListenLater))
	routers.Delete("/listen-later/remove", http.HandlerFunc(apiController.RemoveListenLater))
	return routers
}
