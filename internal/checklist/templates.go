package checklist

// BaseChecklist applies to every generated checklist regardless of the
// chosen technologies.
var BaseChecklist = []string{
	"Define the project goal",
	"Create the Git repository",
	"Set up README.md",
	"Set up CI/CD (GitHub Actions, etc)",
	"Plan milestones",
	"Set up version control",
	"Document the main requirements",
}

// Templates maps a technology name to its setup-task titles.
var Templates = map[string][]string{
	"React": {
		"Set up the React environment",
		"Create the folder structure",
		"Install main dependencies",
		"Configure ESLint and Prettier",
		"Create the initial component",
		"Configure routes (React Router)",
	},
	"Node.js": {
		"Set up the Node.js environment",
		"Create the folder structure",
		"Install main dependencies",
		"Configure ESLint",
		"Create a basic HTTP server",
		"Configure environment variables",
	},
	"TypeScript": {
		"Add TypeScript to the project",
		"Configure tsconfig.json",
		"Adjust build scripts",
		"Migrate .js files to .ts",
	},
	"Python": {
		"Set up a virtual environment",
		"Install dependencies",
		"Create the folder structure",
		"Configure a linter (flake8, black)",
	},
	"Django": {
		"Create the Django project",
		"Configure initial settings",
		"Create the main app",
		"Configure the database",
		"Create a superuser",
	},
	"Laravel": {
		"Create the Laravel project",
		"Configure .env",
		"Generate the application key",
		"Configure authentication",
		"Create initial migrations",
	},
	"Vue.js": {
		"Set up the Vue.js environment",
		"Create the folder structure",
		"Install main dependencies",
		"Configure ESLint",
		"Create the initial component",
	},
	"Flutter": {
		"Create the Flutter project",
		"Configure pubspec.yaml",
		"Run the initial app",
		"Set up the folder structure",
	},
	"Java": {
		"Set up the Java project",
		"Configure the build tool (Maven/Gradle)",
		"Create the package structure",
		"Create the main class",
	},
	"C#": {
		"Create the C# project",
		"Configure the Solution/Project",
		"Add dependencies",
		"Create the main class",
	},
	"Go": {
		"Set up the Go module",
		"Create the folder structure",
		"Create the main function",
		"Add dependencies",
	},
}
