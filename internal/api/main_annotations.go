// @title           joe-pages API
// @version         1.0
// @description     Describe a web page, generate it with a hosted model, edit the code and watch the sandboxed preview.
// @BasePath        /api/v1
// @securityDefinitions.apikey SessionCookie
// @in              cookie
// @name            joe_pages_session
// @description     Session cookie issued by the editor page. Each session owns one workspace.
package api
