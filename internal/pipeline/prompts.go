package pipeline

const classifyPrompt = `You are a message classifier for an auto parts sales group. Decide whether a message is a request to buy a part.
- If the message asks to buy a part, asks for a part, or asks about availability, answer BUYING_REQUEST.
- For everything else (greetings, sales offers, replies with prices) answer OTHER.

Message:
---
%s
---

Examples:
"Hi can i get nosecut for toyato belta?" -> BUYING_REQUEST
"I have a bumper for sale, 15000ksh" -> OTHER
"Good morning everyone" -> OTHER
"Still available" -> OTHER
"Looking for side mirror for Honda Fit" -> BUYING_REQUEST

Respond with only BUYING_REQUEST or OTHER.`

const extractPrompt = `You are a data extractor for an auto parts sales agent. Read the chat message below and extract structured information.

Message:
---
%s
---

Return a single line of valid JSON with these keys:
- "product": the part requested or sold (e.g. "Bumper", "Headlight", "Nosecut").
- "make": the car brand (e.g. "Toyota", "Nissan"). Use "N/A" if not mentioned.
- "type": the car model (e.g. "Harrier", "Belta"). Use "N/A" if not mentioned.
- "year": the manufacturing year. Use "N/A" if not mentioned.
- "price_ksh": the price in Kenya Shillings as a plain number. Use 0 if not mentioned.
- "other_details": colour, side, condition, contact info or anything else relevant. Use "N/A" if none.

Examples:
"Hi can i get nosecut for toyato belta?" -> {"product": "Nosecut", "make": "Toyota", "type": "Belta", "year": "N/A", "price_ksh": 0, "other_details": "N/A"}
"Both sides Back lights Bei poa" -> {"product": "Back lights", "make": "N/A", "type": "N/A", "year": "N/A", "price_ksh": 0, "other_details": "Both sides, Bei poa"}
"I need a front bumper for a 2015 Toyota Harrier, silver. Price?" -> {"product": "Bumper", "make": "Toyota", "type": "Harrier", "year": "2015", "price_ksh": 0, "other_details": "Front, silver"}`

const fraudPrompt = `You are a security analyst for a sales group. Decide whether a message reports a fraudulent phone number.
A fraud report usually contains a phone number and a reason such as "is a conman", "scammer", "don't trust", "stole from me".

Message:
---
%s
---

If it is a fraud report, return one line of JSON with keys "phone_number" (formatted +254XXXXXXXXX) and "reason".
If it is not, return {"phone_number": null, "reason": null}.

Examples:
"Beware of +254712345678, he is a conman." -> {"phone_number": "+254712345678", "reason": "He is a conman."}
"That guy 0712345678 is a scammer" -> {"phone_number": "+254712345678", "reason": "Is a scammer"}
"I have a bumper for sale" -> {"phone_number": null, "reason": null}`

const matchPrompt = `You are an auto parts matching agent. Find the items in a seller's catalog that match a customer's buying request.

Seller catalog, one JSON object per line:
---
%s
---

Customer buying request:
---
%s
---

Compare the request with every catalog item. A good match agrees on product, make, type and year; other_details also counts.
Return a single JSON array holding ONLY the full JSON objects of the matching items, copied unchanged including "id".
If nothing matches, return []. Do not add explanations or markdown.

Example: if the catalog has {"id": 1, "product": "Bumper", "make": "Toyota", "type": "Harrier", "price_ksh": 15000} and the request is "I need a harrier bumper", answer:
[{"id": 1, "product": "Bumper", "make": "Toyota", "type": "Harrier", "price_ksh": 15000}]`
