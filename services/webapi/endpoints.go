package webapisvc

import "fmt"

// Upstream endpoint paths, mirrored by the gateway's offline placeholder
// table. The domain model behind them is opaque here.

func PublicCoursesPath() string { return "/courses/public/all" }

func CoursePath(id string) string { return fmt.Sprintf("/courses/%s", id) }

func PublicCoursePath(id string) string { return fmt.Sprintf("/courses/public/%s", id) }

func CategoriesPath() string { return "/courses/public/categories" }

func DifficultiesPath() string { return "/courses/public/difficulties" }

func LessonsByCoursePath(id string) string { return fmt.Sprintf("/lessons/course/%s", id) }

func QuizzesByCoursePath(id string) string { return fmt.Sprintf("/quiz/course/%s", id) }

func QuizSubmitPath() string { return "/quiz/submit" }

func MyProgressPath() string { return "/user/progress/my" }

func SaveLessonProgressPath() string { return "/user/progress/lesson/save" }
