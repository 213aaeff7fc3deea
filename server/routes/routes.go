package routes

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"barbuddy/server/handlers"
	"barbuddy/server/middleware/auth"
	"barbuddy/server/realtime"
	"barbuddy/services/achievements"
	"barbuddy/services/chat"
	"barbuddy/services/friends"
	"barbuddy/services/groups"
	"barbuddy/services/lifts"
	"barbuddy/services/programs"
	"barbuddy/services/tokens"
	"barbuddy/services/users"
)

// Deps bundles everything the route table needs.
type Deps struct {
	SQL    *sql.DB
	Redis  *redis.Client
	Tokens *tokens.Service
	Hub    *realtime.Hub

	Users        *users.UserService
	Lifts        *lifts.LiftService
	Friends      *friends.FriendService
	Groups       *groups.GroupService
	Programs     *programs.ProgramService
	Achievements *achievements.AchievementService
	Chat         *chat.ChatService

	WebsocketOptions realtime.Options
}

// RegisterRoutes wires the public endpoints, the authenticated REST API
// and the websocket entry point.
func RegisterRoutes(app *fiber.App, deps Deps) {
	health := handlers.NewHealthCheckHandler(deps.SQL, deps.Redis)
	app.Get("/health", health.HandleHealthCheck())
	app.Get("/ready", health.HandleReadinessCheck())

	api := app.Group("/api")

	api.Post("/users/register", handlers.HandleUserRegister(deps.Users))
	api.Post("/users/login", handlers.HandleUserLogin(deps.Users))

	authed := api.Group("", auth.New(auth.Config{Tokens: deps.Tokens}))

	authed.Get("/users/verify", handlers.HandleTokenVerify())
	authed.Get("/users/profile", handlers.HandleUserProfile(deps.Users))
	authed.Get("/users/:friendId", handlers.HandleUserGet(deps.Users))

	authed.Post("/lifts", handlers.HandleLiftCreate(deps.Lifts))
	authed.Get("/lifts", handlers.HandleLiftList(deps.Lifts))
	authed.Get("/lifts/last", handlers.HandleLiftLast(deps.Lifts))
	authed.Get("/lifts/max", handlers.HandleLiftMax(deps.Lifts))
	authed.Get("/lifts/:liftId", handlers.HandleLiftGet(deps.Lifts))
	authed.Put("/lifts/:liftId", handlers.HandleLiftUpdate(deps.Lifts))
	authed.Delete("/lifts/:liftId", handlers.HandleLiftDelete(deps.Lifts))

	authed.Post("/friends", handlers.HandleFriendAdd(deps.Friends))
	authed.Get("/friends", handlers.HandleFriendList(deps.Friends))
	authed.Get("/friends/details", handlers.HandleFriendDetails(deps.Friends))

	authed.Post("/groups", handlers.HandleGroupCreate(deps.Groups))
	authed.Get("/groups", handlers.HandleGroupList(deps.Groups))
	authed.Get("/groups/:groupId", handlers.HandleGroupGet(deps.Groups))
	authed.Post("/groups/:groupId/users", handlers.HandleGroupAddUser(deps.Groups))
	authed.Delete("/groups/:groupId/users/:userId", handlers.HandleGroupRemoveUser(deps.Groups))

	authed.Post("/programs", handlers.HandleProgramCreate(deps.Programs))
	authed.Get("/programs", handlers.HandleProgramList(deps.Programs))
	authed.Get("/programs/:programId", handlers.HandleProgramGet(deps.Programs))
	authed.Put("/programs/:programId", handlers.HandleProgramUpdate(deps.Programs))
	authed.Delete("/programs/:programId", handlers.HandleProgramDelete(deps.Programs))

	authed.Post("/achievements", handlers.HandleAchievementCreate(deps.Achievements))
	authed.Get("/achievements", handlers.HandleAchievementList(deps.Achievements))
	authed.Get("/achievements/:achievementId", handlers.HandleAchievementGet(deps.Achievements))
	authed.Put("/achievements/:achievementId", handlers.HandleAchievementUpdate(deps.Achievements))
	authed.Delete("/achievements/:achievementId", handlers.HandleAchievementDelete(deps.Achievements))

	authed.Get("/chat/:friendId", handlers.HandleChatHistory(deps.Chat))

	// Websocket auth happens in the upgrade handler so a bad token is
	// rejected with 401 instead of a broken socket.
	app.Get("/ws",
		handlers.HandleWebsocketUpgrade(deps.Tokens),
		handlers.HandleWebsocket(deps.Hub, deps.Chat, deps.WebsocketOptions),
	)
}
