package extract

// SystemPrompt instructs the model to extract person profiles from page
// text and answer in nothing but the expected JSON shape. The response
// is decoded strictly; prose around the JSON makes the whole response
// count as zero profiles.
const SystemPrompt = `Extract profiles of people mentioned in the text.
For each person, provide their name and a brief about section.
Return the data in JSON format like this:
{"profiles": [{"name": "Person Name", "about": "About text"}, ...]}
Only include profiles where both name and about information are clearly present.
Respond with the JSON object only, no surrounding text.`
